package shaders

// Every vertex variant writes the same outputs so any vertex variant links
// with any fragment variant.

const vertexHeader = `#version 410 core

uniform mat4 u_Model;
uniform mat4 u_ModelInvTr;
uniform mat4 u_ViewProj;
uniform float u_Time;

in vec4 vs_Pos;
in vec3 vs_Nor;
in vec4 vs_Col;

out vec4 fs_Pos;
out vec4 fs_Nor;
out vec4 fs_LightVec;
out vec4 fs_Col;
out float fs_Disp;

const vec4 lightPos = vec4(5.0, 5.0, 3.0, 1.0);

void emit(vec4 modelPosition, float disp) {
    fs_Col = vs_Col;
    fs_Nor = vec4(mat3(u_ModelInvTr) * vs_Nor, 0.0);
    fs_Pos = modelPosition;
    fs_LightVec = lightPos - modelPosition;
    fs_Disp = disp;
    gl_Position = u_ViewProj * modelPosition;
}
`

// noise3 is value noise over a hashed integer lattice; fbm3 sums four octaves.
const noiseGLSL = `
float hash3(vec3 p) {
    p = fract(p * 0.3183099 + vec3(0.71, 0.113, 0.419));
    p *= 17.0;
    return fract(p.x * p.y * p.z * (p.x + p.y + p.z));
}

float noise3(vec3 p) {
    vec3 i = floor(p);
    vec3 f = fract(p);
    vec3 u = f * f * (3.0 - 2.0 * f);
    return mix(mix(mix(hash3(i + vec3(0, 0, 0)), hash3(i + vec3(1, 0, 0)), u.x),
                   mix(hash3(i + vec3(0, 1, 0)), hash3(i + vec3(1, 1, 0)), u.x), u.y),
               mix(mix(hash3(i + vec3(0, 0, 1)), hash3(i + vec3(1, 0, 1)), u.x),
                   mix(hash3(i + vec3(0, 1, 1)), hash3(i + vec3(1, 1, 1)), u.x), u.y), u.z);
}

float fbm3(vec3 p) {
    float sum = 0.0;
    float amp = 0.5;
    for (int i = 0; i < 4; i++) {
        sum += amp * noise3(p);
        p *= 2.0;
        amp *= 0.5;
    }
    return sum;
}
`

const lambertVertex = vertexHeader + `
void main() {
    emit(u_Model * vs_Pos, 0.0);
}
`

const expandVertex = vertexHeader + `
void main() {
    float s = 0.25 * (sin(u_Time * 0.05) + 1.0);
    vec4 p = vs_Pos + vec4(vs_Nor * s, 0.0);
    emit(u_Model * p, s);
}
`

const collapseVertex = vertexHeader + `
void main() {
    float t = 0.5 * (cos(u_Time * 0.03) + 1.0);
    vec3 cube = sign(vs_Pos.xyz) * max(abs(vs_Pos.x), max(abs(vs_Pos.y), abs(vs_Pos.z)));
    vec4 p = vec4(mix(vs_Pos.xyz, cube, t), 1.0);
    emit(u_Model * p, t);
}
`

const fireballVertex = vertexHeader + noiseGLSL + `
void main() {
    vec3 n = normalize(vs_Nor);
    float t = u_Time * 0.01;
    float low = 0.3 * sin(3.0 * n.y + t) * cos(2.0 * n.x - t);
    float high = fbm3(n * 4.0 + vec3(0.0, t * 2.0, 0.0));
    float disp = max(0.0, low + 0.6 * high - 0.2);
    emit(u_Model * (vs_Pos + vec4(n * disp, 0.0)), disp);
}
`
